// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/aws/smithy-go/logging"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// AWSCTL_LOG env variable.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("AWSCTL_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&CustomHandler{Writer: os.Stderr})
	log.SetLevelFromString(level)
}

// CustomHandler formats log messages and writes them to Writer. Logs go to
// stderr so they never mix with command output.
type CustomHandler struct {
	Writer io.Writer
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())
	message := e.Message
	for _, name := range e.Fields.Names() {
		message += fmt.Sprintf(" %s=%v", name, e.Fields.Get(name))
	}
	fmt.Fprintf(w, "%s %.1s %s\n", timestamp, level, message)
	return nil
}

// DebugEnabled reports whether the apex level lets debug entries through.
func DebugEnabled() bool {
	if l, ok := log.Log.(*log.Logger); ok {
		return l.Level <= log.DebugLevel
	}
	return false
}

// SDKLogger bridges the AWS SDK's smithy logger into apex so SDK retries and
// wire logging land in the same stream as ours.
func SDKLogger() logging.Logger {
	return logging.LoggerFunc(func(classification logging.Classification, format string, v ...interface{}) {
		switch classification {
		case logging.Warn:
			log.Warnf("aws-sdk: "+format, v...)
		default:
			log.Debugf("aws-sdk: "+format, v...)
		}
	})
}
