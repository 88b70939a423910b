package worker

import (
	"github.com/spec-kit/support-desk/internal/service"
)

// StartActivityWorker registers activity log handlers.
func StartActivityWorker(activity *service.ActivityService) {
	if activity == nil {
		return
	}
	activity.RegisterHandlers()
}
