package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yourorg/bucket-upload/internal/types"
)

// UploadActivityName must match the name the worker registers the activity under.
const UploadActivityName = "Activities.UploadObject"

// UploadWorkflow runs a single upload attempt. Failures surface to the caller
// instead of being retried.
func UploadWorkflow(ctx workflow.Context, p types.UploadParams) (types.UploadResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var res types.UploadResult
	if err := workflow.ExecuteActivity(ctx, UploadActivityName, p).Get(ctx, &res); err != nil {
		return types.UploadResult{}, err
	}
	workflow.GetLogger(ctx).Info("Upload workflow completed", "key", res.Key)
	return res, nil
}
