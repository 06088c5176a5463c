package oblogging

func (l *Oblogging) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
	l.DebugCount += 1
}

func (l *Oblogging) Debug(args ...interface{}) {
	l.logger.Debug(args...)
	l.DebugCount += 1
}
