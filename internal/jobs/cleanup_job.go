package job

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/socialsight/socialsight/internal/repository"
)

const failedRetention = 7 * 24 * time.Hour

// CleanupJob purges posts that have been sitting in the failed state for
// longer than the retention window.
type CleanupJob struct {
	pr repository.PostRepository
}

func NewCleanupJob(pr repository.PostRepository) *CleanupJob {
	return &CleanupJob{pr: pr}
}

func (j *CleanupJob) CleanupFailed() {
	ctx := context.Background()

	cutoff := time.Now().Add(-failedRetention)
	removed, err := j.pr.DeleteFailedBefore(ctx, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if removed > 0 {
		slog.Info("cleaned up failed posts: " + strconv.FormatInt(removed, 10))
	}
}
