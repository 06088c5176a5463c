package oblogging

func (l *Oblogging) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
	l.InfoCount += 1
}

func (l *Oblogging) Info(args ...interface{}) {
	l.logger.Info(args...)
	l.InfoCount += 1
}
