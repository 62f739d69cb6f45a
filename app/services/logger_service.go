package services

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

// LoggerService handles application logging with one file per day
type LoggerService struct {
	logDir     string
	logFile    *os.File
	logger     *log.Logger
	currentDay string
}

// NewLoggerService creates a logger writing under dataPath/logs
func NewLoggerService(dataPath string) *LoggerService {
	service := &LoggerService{logDir: filepath.Join(dataPath, "logs")}
	service.initializeLogger()
	return service
}

// initializeLogger sets up the logging system
func (s *LoggerService) initializeLogger() {
	if err := os.MkdirAll(s.logDir, 0755); err != nil {
		log.Printf("Warning: Could not create logs directory: %v", err)
		s.logDir = "logs"
		os.MkdirAll(s.logDir, 0755)
	}

	if err := s.rotateLogFile(); err != nil {
		log.Printf("Warning: Could not create log file: %v. Logging to stdout only.", err)
		s.logger = log.New(os.Stdout, "", log.LstdFlags|log.Lshortfile)
		return
	}

	// Write to both file and stdout, and route the standard logger the
	// same way so package-level log.Printf calls land in the file too.
	multiWriter := io.MultiWriter(os.Stdout, s.logFile)
	s.logger = log.New(multiWriter, "", log.LstdFlags|log.Lshortfile)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	s.LogInfo("Logger initialized", fmt.Sprintf("Log directory: %s", s.logDir))
}

// rotateLogFile creates a new log file for the current day
func (s *LoggerService) rotateLogFile() error {
	today := time.Now().Format("2006-01-02")
	if s.currentDay == today && s.logFile != nil {
		return nil
	}

	if s.logFile != nil {
		s.logFile.Close()
	}

	logFilePath := filepath.Join(s.logDir, fmt.Sprintf("%s.log", today))
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	s.logFile = file
	s.currentDay = today
	return nil
}

// LogInfo logs an informational message
func (s *LoggerService) LogInfo(message string, details ...string) {
	s.checkAndRotate()
	s.logger.Printf("[INFO] %s%s", message, detailSuffix(details))
}

// LogWarning logs a warning message
func (s *LoggerService) LogWarning(message string, details ...string) {
	s.checkAndRotate()
	s.logger.Printf("[WARNING] %s%s", message, detailSuffix(details))
}

// LogError logs an error message
func (s *LoggerService) LogError(message string, err error, details ...string) {
	s.checkAndRotate()
	errorStr := ""
	if err != nil {
		errorStr = fmt.Sprintf(" | Error: %v", err)
	}
	s.logger.Printf("[ERROR] %s%s%s", message, errorStr, detailSuffix(details))
}

// LogPanic logs a panic with stack trace
func (s *LoggerService) LogPanic(recovered interface{}) {
	s.checkAndRotate()
	s.logger.Printf("[PANIC] Recovered from panic: %v", recovered)
	s.logger.Printf("[PANIC] Stack trace:\n%s", string(debug.Stack()))
}

// RecoverPanic is a helper to recover from panics in goroutines
func (s *LoggerService) RecoverPanic() {
	if r := recover(); r != nil {
		s.LogPanic(r)
	}
}

// checkAndRotate switches to a new day's log file when the date changes
func (s *LoggerService) checkAndRotate() {
	today := time.Now().Format("2006-01-02")
	if s.currentDay != today {
		if err := s.rotateLogFile(); err == nil && s.logFile != nil {
			multiWriter := io.MultiWriter(os.Stdout, s.logFile)
			s.logger.SetOutput(multiWriter)
			log.SetOutput(multiWriter)
		}
	}
}

// CleanOldLogs removes log files older than the given number of days
func (s *LoggerService) CleanOldLogs(daysToKeep int) error {
	files, err := os.ReadDir(s.logDir)
	if err != nil {
		return err
	}

	cutoffDate := time.Now().AddDate(0, 0, -daysToKeep)
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".log" {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoffDate) {
			os.Remove(filepath.Join(s.logDir, file.Name()))
		}
	}
	return nil
}

// Close closes the log file
func (s *LoggerService) Close() {
	if s.logFile != nil {
		s.logFile.Close()
	}
}

func detailSuffix(details []string) string {
	if len(details) == 0 {
		return ""
	}
	return " | " + details[0]
}
