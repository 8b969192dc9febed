// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPredictionRecorded logs a persisted prediction record.
func (al *AuditLogger) LogPredictionRecorded(recordID int64, value float64, overridden bool, recordedAt time.Time) {
	al.WithFields(logrus.Fields{
		"record_id":   recordID,
		"prediction":  value,
		"overridden":  overridden,
		"recorded_at": recordedAt.Unix(),
	}).Info("Prediction recorded")
}

// LogValidationRejected logs a request rejected before reaching the model.
func (al *AuditLogger) LogValidationRejected(fields []string, reason string) {
	al.WithFields(logrus.Fields{
		"fields": fields,
		"reason": reason,
	}).Info("Prediction request rejected")
}

// LogPersistenceFailure logs an audit write that could not be committed.
func (al *AuditLogger) LogPersistenceFailure(value float64, err error) {
	al.WithFields(logrus.Fields{
		"prediction": value,
		"error":      err.Error(),
	}).Error("Prediction record not saved")
}
