// Copyright © 2025 Fair Grade Forests
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package logging configures the process wide logrus logger that the
// firefly-common context loggers write through.
package logging

import (
	"io"
	"math"
	"os"
	"strings"

	"github.com/fairgradeforests/forestsync/internal/confutil"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

func InitConfig(conf *config.LogConfig) {
	logrus.SetLevel(parseLevel(confutil.StringNotEmpty(conf.Level, *config.LogDefaults.Level)))
	if out := newOutput(&conf.File, confutil.StringNotEmpty(conf.Output, *config.LogDefaults.Output)); out != nil {
		logrus.SetOutput(out)
	}
	format := confutil.StringNotEmpty(conf.Format, *config.LogDefaults.Format)
	logrus.SetReportCaller(format == "detailed")
	logrus.SetFormatter(newFormatter(conf, format))
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	case "trace":
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// newOutput returns nil to leave the current output alone
func newOutput(conf *config.LogFileConfig, output string) io.Writer {
	switch output {
	case "file":
		maxSize := confutil.ByteSize(conf.MaxSize, 0, *config.LogDefaults.File.MaxSize)
		maxAge := confutil.DurationMin(conf.MaxAge, 0, *config.LogDefaults.File.MaxAge)
		return &lumberjack.Logger{
			Filename: confutil.StringNotEmpty(conf.Filename, *config.LogDefaults.File.Filename),
			// lumberjack works in whole megabytes and days, so round up
			MaxSize:    int(math.Ceil(float64(maxSize) / (1024 * 1024))),
			MaxAge:     int(math.Ceil(maxAge.Hours() / 24)),
			MaxBackups: confutil.IntMin(conf.MaxBackups, 0, *config.LogDefaults.File.MaxBackups),
			Compress:   confutil.Bool(conf.Compress, *config.LogDefaults.File.Compress),
		}
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		return nil
	}
}

type utcFormatter struct {
	logrus.Formatter
}

func (f utcFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return f.Formatter.Format(e)
}

func newFormatter(conf *config.LogConfig, format string) logrus.Formatter {
	timeFormat := confutil.StringNotEmpty(conf.TimeFormat, *config.LogDefaults.TimeFormat)
	disableColor := confutil.Bool(conf.DisableColor, *config.LogDefaults.DisableColor)
	forceColor := confutil.Bool(conf.ForceColor, *config.LogDefaults.ForceColor)

	var f logrus.Formatter
	switch format {
	case "json":
		jc := &conf.JSON
		jd := &config.LogDefaults.JSON
		f = &logrus.JSONFormatter{
			TimestampFormat: timeFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  confutil.StringNotEmpty(jc.TimestampField, *jd.TimestampField),
				logrus.FieldKeyLevel: confutil.StringNotEmpty(jc.LevelField, *jd.LevelField),
				logrus.FieldKeyMsg:   confutil.StringNotEmpty(jc.MessageField, *jd.MessageField),
				logrus.FieldKeyFunc:  confutil.StringNotEmpty(jc.FuncField, *jd.FuncField),
				logrus.FieldKeyFile:  confutil.StringNotEmpty(jc.FileField, *jd.FileField),
			},
		}
	case "detailed":
		f = &logrus.TextFormatter{
			DisableColors:   disableColor,
			ForceColors:     forceColor,
			TimestampFormat: timeFormat,
			FullTimestamp:   true,
		}
	default:
		f = &prefixed.TextFormatter{
			DisableColors:   disableColor,
			ForceColors:     forceColor,
			TimestampFormat: timeFormat,
			ForceFormatting: true,
			FullTimestamp:   true,
		}
	}
	if confutil.Bool(conf.UTC, *config.LogDefaults.UTC) {
		f = utcFormatter{Formatter: f}
	}
	return f
}

