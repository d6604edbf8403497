package utils

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var currentLevel atomic.Int32

func init() {
	currentLevel.Store(int32(LevelInfo))
}

// ParseLevel понимает debug, info, warn/warning и error; всё остальное даёт info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(level Level) {
	currentLevel.Store(int32(level))
}

func enabled(level Level) bool {
	return Level(currentLevel.Load()) <= level
}

func format(message string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(message, args...)
	}
	return message
}

func LogInfo(component, message string, args ...interface{}) {
	if !enabled(LevelInfo) {
		return
	}
	log.Printf("%s[INFO]%s %s[%s]%s %s",
		ColorBlue, ColorReset,
		ColorCyan, component, ColorReset,
		format(message, args))
}

func LogSuccess(component, message string, args ...interface{}) {
	if !enabled(LevelInfo) {
		return
	}
	log.Printf("%s[SUCCESS]%s %s[%s]%s %s",
		ColorGreen, ColorReset,
		ColorCyan, component, ColorReset,
		format(message, args))
}

func LogWarning(component, message string, args ...interface{}) {
	if !enabled(LevelWarn) {
		return
	}
	log.Printf("%s[WARNING]%s %s[%s]%s %s",
		ColorYellow, ColorReset,
		ColorCyan, component, ColorReset,
		format(message, args))
}

func LogError(component, message string, err error) {
	if !enabled(LevelError) {
		return
	}
	if err != nil {
		log.Printf("%s[ERROR]%s %s[%s]%s %s: %s%v%s",
			ColorRed, ColorReset,
			ColorCyan, component, ColorReset,
			message,
			ColorRed, err, ColorReset)
		return
	}
	log.Printf("%s[ERROR]%s %s[%s]%s %s",
		ColorRed, ColorReset,
		ColorCyan, component, ColorReset,
		message)
}

func LogDebug(component, message string, args ...interface{}) {
	if !enabled(LevelDebug) {
		return
	}
	log.Printf("%s[DEBUG]%s %s[%s]%s %s",
		ColorPurple, ColorReset,
		ColorCyan, component, ColorReset,
		format(message, args))
}

func LogRequest(method, path, userID string) {
	if !enabled(LevelInfo) {
		return
	}
	log.Printf("%s[REQUEST]%s %s%s%s %s | UserID: %s%s%s",
		ColorCyan, ColorReset,
		ColorWhite, method, ColorReset,
		path,
		ColorYellow, userID, ColorReset)
}

func LogResponse(path string, statusCode int, duration time.Duration) {
	if !enabled(LevelInfo) {
		return
	}
	color := ColorGreen
	if statusCode >= 400 && statusCode < 500 {
		color = ColorYellow
	} else if statusCode >= 500 {
		color = ColorRed
	}

	log.Printf("%s[RESPONSE]%s %s | Status: %s%d%s | Duration: %s%v%s",
		ColorGray, ColorReset,
		path,
		color, statusCode, ColorReset,
		ColorWhite, duration, ColorReset)
}

func LogDB(operation, query string) {
	if !enabled(LevelDebug) {
		return
	}
	log.Printf("%s[DB]%s %s[%s]%s %s",
		ColorGray, ColorReset,
		ColorWhite, operation, ColorReset,
		query)
}
