package transport

import (
	applog "nitemix/internal/log"
)

// LoggingTransport implements Transport by logging every message. Used when
// no visualizer or remote consumer is configured.
type LoggingTransport struct{}

var _ Transport = (*LoggingTransport)(nil)

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: using logging transport")
	return &LoggingTransport{}
}

// Send logs the message at debug level. Logging never fails to "send".
func (lt *LoggingTransport) Send(msg Message) error {
	switch msg.Kind {
	case KindStrength:
		applog.Debugf("Transport: strength %.3f", msg.Strength)
	case KindTerminate:
		applog.Debugf("Transport: terminate")
	}
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}
