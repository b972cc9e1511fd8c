package queue

import (
	"github.com/socialsight/socialsight/internal/service"
)

type Queue struct {
	ps service.PublishService
}

func NewQueue(ps service.PublishService) *Queue {
	return &Queue{ps: ps}
}

const TaskTypeSchedulePost = "schedule:post"

type SchedulePostPayload struct {
	PostID int64 `json:"post_id"`
}
