package work

import (
	"errors"
	"time"

	"github.com/vigil-app/vigil/colors"
	"github.com/vigil-app/vigil/server/models"
	"gorm.io/gorm"
)

type stuckJobsRequeuer struct {
	stopChan chan struct{}
}

func newStuckJobsRequeuer() *stuckJobsRequeuer {
	return &stuckJobsRequeuer{
		stopChan: make(chan struct{}),
	}
}

// start starts the requeuer loop that pulls jobs from 'in-progress'
// that are stuck(i.e stayed too long in-progress) and requeues them
func (r *stuckJobsRequeuer) start() {
	go r.loop()
}

func (r *stuckJobsRequeuer) stop() {
	r.stopChan <- struct{}{}
}

func (r *stuckJobsRequeuer) loop() {
	var stuckJob *models.Job
	var err error

	sleepBackOff := 30
	rateLimiter := time.NewTicker(DefaultTickerDuration)
	defer rateLimiter.Stop()

	logg.Infof("Starting stuck jobs requeuer")
	for {
		select {
		case <-r.stopChan:
			logg.Infof("Stopping stuck jobs requeuer")
			return
		case <-rateLimiter.C:
			stuckJob, err = models.LastJobLastUpdated(30, models.IN_PROGRESS_JOB)

			// If no stuck job found, sleep for 'sleepBackOff' minutes
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rateLimiter.Reset(time.Duration(sleepBackOff) * time.Minute)
				continue
			}

			if err != nil {
				r.logError(err)
				rateLimiter.Reset(TickerDurationOnError)
				continue
			}

			r.logInfof("fetched job with id=%v, status_id=%v, job.claimed=%v",
				stuckJob.ID, stuckJob.JobStatusID, stuckJob.Claimed)

			r.requeue(stuckJob)
			rateLimiter.Reset(DefaultTickerDuration)
		}
	}
}

func (r *stuckJobsRequeuer) requeue(job *models.Job) {
	jobStatus, err := models.FindJobStatus(models.ENQUEUED_JOB)
	if err != nil {
		logg.Error(err)
		return
	}

	err = job.Update(map[string]interface{}{
		"claimed":       false,
		"job_status_id": jobStatus.ID,
	})
	if err != nil {
		r.logError(err)
	}

	r.logInfof("job with id=%v requeued", job.ID)
}

func (r *stuckJobsRequeuer) logInfof(template string, args ...interface{}) {
	prefix := colors.Yellow("[stuck jobs requeuer] ")
	logg.Infof(prefix+template, args...)
}

func (r *stuckJobsRequeuer) logError(args ...interface{}) {
	prefix := colors.Red("[stuck jobs requeuer] ")
	logg.Error(append([]interface{}{prefix}, args...)...)
}
