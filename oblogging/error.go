package oblogging

func (l *Oblogging) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
	l.ErrorCount += 1
}

func (l *Oblogging) Error(args ...interface{}) {
	l.logger.Error(args...)
	l.ErrorCount += 1
}
