package utils

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupLogging(t *testing.T) {
	// Explicit level wins
	logger := SetupLogging("debug")
	if logger.Level != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.Level)
	}

	// Environment variable is the fallback
	os.Setenv("STP_LOG_LEVEL", "warn")
	defer os.Unsetenv("STP_LOG_LEVEL")

	logger = SetupLogging("")
	if logger.Level != logrus.WarnLevel {
		t.Errorf("Expected warn level from STP_LOG_LEVEL, got %v", logger.Level)
	}

	// Invalid levels fall back to info
	logger = SetupLogging("not-a-level")
	if logger.Level != logrus.InfoLevel {
		t.Errorf("Expected info level for invalid input, got %v", logger.Level)
	}
}

func TestGetEnvInt(t *testing.T) {
	os.Setenv("STP_TEST_INT", "42")
	defer os.Unsetenv("STP_TEST_INT")

	if v := GetEnvInt("STP_TEST_INT", 7); v != 42 {
		t.Errorf("Expected 42, got %d", v)
	}
	if v := GetEnvInt("STP_TEST_MISSING", 7); v != 7 {
		t.Errorf("Expected default 7, got %d", v)
	}

	os.Setenv("STP_TEST_INT", "not-a-number")
	if v := GetEnvInt("STP_TEST_INT", 7); v != 7 {
		t.Errorf("Expected default 7 for invalid value, got %d", v)
	}
}

func TestValidateConnectionParams(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	if !ValidateConnectionParams("localhost", "root", "secret", "panel", "3306", logger) {
		t.Error("Expected valid parameters to pass validation")
	}
	if ValidateConnectionParams("", "root", "secret", "panel", "3306", logger) {
		t.Error("Expected missing host to fail validation")
	}
	if ValidateConnectionParams("localhost", "", "secret", "panel", "3306", logger) {
		t.Error("Expected missing user to fail validation")
	}
	if ValidateConnectionParams("localhost", "root", "secret", "", "3306", logger) {
		t.Error("Expected missing database to fail validation")
	}
	if ValidateConnectionParams("localhost", "root", "secret", "panel", "abc", logger) {
		t.Error("Expected non-numeric port to fail validation")
	}
	// Empty password is allowed
	if !ValidateConnectionParams("localhost", "root", "", "panel", "3306", logger) {
		t.Error("Expected empty password to pass validation")
	}
}
