package oblogging

func (l *Oblogging) Fatalf(format string, args ...interface{}) {
	l.FatalCount += 1
	l.logger.Fatalf(format, args...)
}

func (l *Oblogging) Fatal(args ...interface{}) {
	l.FatalCount += 1
	l.logger.Fatal(args...)
}
