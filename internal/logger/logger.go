package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

var (
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
)

func Init() {
	infoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	debugLogger = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// kv renders trailing key-value pairs as k=v tokens appended to msg.
func kv(msg string, pairs []interface{}) string {
	if len(pairs) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, " %v=%v", pairs[i], pairs[i+1])
	}
	if len(pairs)%2 != 0 {
		fmt.Fprintf(&b, " %v", pairs[len(pairs)-1])
	}
	return b.String()
}

func Info(msg string, pairs ...interface{}) {
	infoLogger.Output(2, kv(msg, pairs))
}

func Infof(format string, v ...interface{}) {
	infoLogger.Output(2, fmt.Sprintf(format, v...))
}

func Error(msg string, pairs ...interface{}) {
	errorLogger.Output(2, kv(msg, pairs))
}

func Errorf(format string, v ...interface{}) {
	errorLogger.Output(2, fmt.Sprintf(format, v...))
}

func Debug(msg string, pairs ...interface{}) {
	debugLogger.Output(2, kv(msg, pairs))
}

func Debugf(format string, v ...interface{}) {
	debugLogger.Output(2, fmt.Sprintf(format, v...))
}

func Fatal(msg string) {
	errorLogger.Fatal(msg)
}

func Fatalf(format string, v ...interface{}) {
	errorLogger.Fatalf(format, v...)
}
