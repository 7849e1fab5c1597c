// Package logging configures the process logger and defines the upload
// lifecycle events emitted by the storage pipeline.
package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup applies the level and output format to the standard logrus logger.
// Production gets JSON lines; everything else gets human-readable text.
func Setup(level, appEnv string) {
	log.SetOutput(os.Stdout)

	if appEnv == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// UploadStarted records the start of a backend write for a validated upload.
func UploadStarted(requestID, filename string, size int64) {
	log.WithFields(log.Fields{
		"request_id": requestID,
		"filename":   filename,
		"size_bytes": size,
	}).Info("upload started")
}

// UploadSucceeded records a successful write.
func UploadSucceeded(requestID, key string, retries int) {
	log.WithFields(log.Fields{
		"request_id": requestID,
		"key":        key,
		"retries":    retries,
	}).Info("upload succeeded")
}

// UploadFailed records a terminal write failure.
func UploadFailed(requestID, key, reason string, retries int) {
	log.WithFields(log.Fields{
		"request_id": requestID,
		"key":        key,
		"error":      reason,
		"retries":    retries,
	}).Error("upload failed")
}
