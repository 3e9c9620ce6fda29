package logger

import (
	"io"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

// Log доступен сразу, Init лишь перенастраивает его.
var Log = logrus.New()

type Options struct {
	Level    string
	Env      string
	File     string
	MaxAge   time.Duration
	Rotation time.Duration
}

// Init инициализирует структурированный логгер.
func Init(opts Options) error {
	lvl, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, text для development
	if opts.Env == "development" {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		Log.SetFormatter(&logrus.JSONFormatter{})
	}

	if opts.File == "" {
		Log.SetOutput(os.Stdout)
		return nil
	}

	writer, err := newRotatingWriter(opts)
	if err != nil {
		return err
	}
	Log.SetOutput(io.MultiWriter(os.Stdout, writer))
	return nil
}

func newRotatingWriter(opts Options) (io.Writer, error) {
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	rotation := opts.Rotation
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	return rotatelogs.New(
		opts.File+".%Y%m%d",
		rotatelogs.WithLinkName(opts.File),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(rotation),
	)
}

// Silence отключает вывод, используется в тестах.
func Silence() {
	Log.SetOutput(io.Discard)
}
