package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/internal/service"
)

// PublishJob is the safety net behind the delayed queue: it scans for posts
// whose scheduled time has passed but that still have claimable platform
// records, covering enqueue failures and missed tasks.
type PublishJob struct {
	pr repository.PostRepository
	ps service.PublishService
}

func NewPublishJob(pr repository.PostRepository, ps service.PublishService) *PublishJob {
	return &PublishJob{
		pr: pr,
		ps: ps,
	}
}

func (j *PublishJob) PublishDue() {
	ctx := context.Background()

	posts, err := j.pr.ListDue(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range posts {
		if err := j.ps.PublishPost(ctx, post.ID); err != nil {
			slog.Info(err.Error())
		}
	}
}
