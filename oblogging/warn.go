package oblogging

func (l *Oblogging) Warnf(format string, args ...interface{}) {
	l.logger.Warningf(format, args...)
	l.WarnCount += 1
}

func (l *Oblogging) Warn(args ...interface{}) {
	l.logger.Warning(args...)
	l.WarnCount += 1
}

func (l *Oblogging) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

func (l *Oblogging) Warning(args ...interface{}) {
	l.Warn(args...)
}
