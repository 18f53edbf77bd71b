package source

// Option applies a configuration option to the CSVLoader.
type Option func(*CSVLoader)

// WithDelimiter sets the field delimiter. Zero keeps detection by file extension.
func WithDelimiter(d rune) Option {
	return func(l *CSVLoader) {
		l.delimiter = d
	}
}

// WithDecimalComma parses numbers written with a decimal comma and dot
// thousands separators, e.g. "1.234,5".
func WithDecimalComma() Option {
	return func(l *CSVLoader) {
		l.decimal = ','
	}
}
