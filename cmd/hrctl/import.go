package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ogurasousui/hr-attendance/internal/adapters/cache"
	"github.com/ogurasousui/hr-attendance/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hr-attendance/internal/adapters/spreadsheet"
	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance/internal/core/employee"
	"github.com/ogurasousui/hr-attendance/internal/platform/config"
	pg "github.com/ogurasousui/hr-attendance/internal/platform/db/postgres"
	redisplatform "github.com/ogurasousui/hr-attendance/internal/platform/redis"
)

type importReportOutput struct {
	Total    int                   `json:"total"`
	Imported int                   `json:"imported"`
	Failed   int                   `json:"failed"`
	Errors   []importFailureOutput `json:"errors"`
}

type importFailureOutput struct {
	Row        int    `json:"row"`
	EmployeeID int64  `json:"employeeId"`
	Date       string `json:"date"`
	Error      string `json:"error"`
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import time entries from an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			candidates, err := spreadsheet.Parse(data)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows parsed; nothing written\n", len(candidates))
				return nil
			}

			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			pool, err := pg.NewPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			tx := pg.NewTransactionManager(pool)
			employees := employee.NewService(postgres.NewEmployeeRepository(pool), tx)
			svc, closeCache := newImportService(cfg.Redis, postgres.NewTimeEntryRepository(pool), employees, tx, logger)
			defer closeCache()

			report, err := svc.ImportTimeEntries(ctx, candidates)
			if err != nil {
				return err
			}
			logger.Info("import finished",
				zap.String("file", args[0]),
				zap.Int("imported", report.Imported),
				zap.Int("failed", report.Failed),
			)
			return writeReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate the workbook without touching the database")
	return cmd
}

// newImportService は取り込み用の Service を生成します。Redis が設定されていれば、
// 取り込み後にサーバーと共有する集計キャッシュを無効化します。
func newImportService(
	redisCfg config.RedisConfig,
	repo attendance.Repository,
	employees attendance.EmployeeLookup,
	tx attendance.TransactionManager,
	logger *zap.Logger,
) (*attendance.Service, func()) {
	opts := []attendance.Option{attendance.WithLogger(logger)}
	closeFn := func() {}
	if client := redisplatform.NewClient(redisCfg); client != nil {
		opts = append(opts, attendance.WithStatisticsCache(cache.NewStatisticsCache(client, redisCfg.KeyPrefix, redisCfg.StatsTTL)))
		closeFn = func() { _ = client.Close() }
	}
	return attendance.NewService(repo, employees, tx, opts...), closeFn
}

func writeReport(w io.Writer, report *attendance.ImportReport) error {
	out := importReportOutput{
		Total:    report.Total,
		Imported: report.Imported,
		Failed:   report.Failed,
		Errors:   make([]importFailureOutput, 0, len(report.Errors)),
	}
	for _, f := range report.Errors {
		out.Errors = append(out.Errors, importFailureOutput{Row: f.Row, EmployeeID: f.EmployeeID, Date: f.Date, Error: f.Error})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
