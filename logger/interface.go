package logger

// LoggerInterface is the structured logging surface the service depends
// on. Keys and values alternate, as with zap's SugaredLogger.
type LoggerInterface interface {
	Debugw(msg string, kv ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)

	With(kv ...any) LoggerInterface
	SafeSync()
}
