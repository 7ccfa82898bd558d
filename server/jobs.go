package server

import (
	"path/filepath"

	"github.com/vigil-app/vigil/server/gstorage"
	"github.com/vigil-app/vigil/server/models"
	"github.com/vigil-app/vigil/server/work"
)

// CHECK_OVERDUE_SCHEDULE is the cadence at which overdue-check cycles
// are enqueued. The checker itself is idempotent, so the exact cadence
// only affects notification latency
const CHECK_OVERDUE_SCHEDULE = "*/5 * * * *"

func runOverdueCheck(map[string]interface{}) error {
	_, err := overdueChecker.Run()
	return err
}

func backupSqliteDb(map[string]interface{}) error {
	gStorage, err := gstorage.NewGStorage(appConfig.Google.ApplicationCredentials)
	if err != nil {
		return err
	}

	dbDir, err := models.DbDirectory(serverRootDir)
	if err != nil {
		return err
	}

	return gStorage.UploadFile(
		appConfig.Google.Storage.Bucket,
		appConfig.Google.Storage.Prefix,
		filepath.Join(dbDir, models.DB_NAME),
	)
}

func registerJobHandlers(wpa *work.WorkerPoolAdapter) {
	wpa.Register("check_overdue", runOverdueCheck)
	wpa.Register("backup_sqlite_db", backupSqliteDb)
}

func enqueueJobs(wpa *work.WorkerPoolAdapter) {
	wpa.PeriodicallyPerform(CHECK_OVERDUE_SCHEDULE, work.JobParams{
		Name:    "check_overdue",
		Handler: "check_overdue",
		Unique:  true,
		Args:    map[string]interface{}{},
	})

	if sqliteBackupEnabled() {
		wpa.PeriodicallyPerform(appConfig.Google.Storage.SqliteBackupSchedule, work.JobParams{
			Name:    "backup_sqlite_db",
			Handler: "backup_sqlite_db",
			Unique:  true,
			Args:    map[string]interface{}{},
		})
	}
}
