// Package cleanup は期限切れセッションとロール選択待ち登録情報の定期削除ジョブを提供する。
// 期限切れの行は参照時に無効として扱われるため、このジョブはテーブルの肥大化を防ぐためだけに動く。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// target は削除対象のテーブル。
type target struct {
	table string
	label string
}

var targets = []target{
	{table: "sessions", label: "セッション"},
	{table: "pending_signups", label: "登録待ち情報"},
}

// CleanupJob は期限切れ行の削除ジョブ。冪等で、削除対象がなくてもエラーにならない。
type CleanupJob struct {
	db     Executor
	logger *slog.Logger
	now    func() time.Time

	// Interval はRunLoopの実行間隔（デフォルト: 1時間）
	Interval time.Duration
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupJob{
		db:       db,
		logger:   logger,
		now:      time.Now,
		Interval: time.Hour,
	}
}

// Run はexpires_atが現在時刻以前のセッションと登録待ち情報を削除する。
// 1つのテーブルで失敗した場合はそこで中断してエラーを返す。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()
	cutoff := j.now()

	var total int64
	for _, t := range targets {
		deleted, err := j.deleteExpired(ctx, t, cutoff)
		if err != nil {
			return err
		}
		total += deleted
	}

	duration := time.Since(start)
	j.logger.Info("期限切れデータのクリーンアップが完了しました",
		slog.Int64("deleted_count", total),
		slog.Time("cutoff", cutoff),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)
	return nil
}

func (j *CleanupJob) deleteExpired(ctx context.Context, t target, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= $1`, t.table)
	result, err := j.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		j.logger.Error(t.label+"のクリーンアップに失敗しました",
			slog.String("error", err.Error()),
			slog.String("table", t.table),
		)
		return 0, fmt.Errorf("%sのクリーンアップの実行に失敗: %w", t.label, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("error", err.Error()),
			slog.String("table", t.table),
		)
		return 0, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	j.logger.Debug(t.label+"を削除しました",
		slog.String("table", t.table),
		slog.Int64("deleted_count", deleted),
	)
	return deleted, nil
}

// RunLoop は起動直後に1回、その後Intervalごとにジョブを実行する。
// ctxがキャンセルされると終了する。個々の実行の失敗はログに記録して継続する。
func (j *CleanupJob) RunLoop(ctx context.Context) {
	interval := j.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	j.logger.Info("クリーンアップワーカーを開始しました",
		slog.Duration("interval", interval),
	)

	_ = j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップワーカーを停止しました")
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
