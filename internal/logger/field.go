package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// Field is a typed key/value attached to a log entry.
type Field interface {
	AddTo(event *zerolog.Event)
	addToContext(ctx zerolog.Context) zerolog.Context
}

type stringField struct {
	key, value string
}

func (f stringField) AddTo(e *zerolog.Event) { e.Str(f.key, f.value) }
func (f stringField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Str(f.key, f.value)
}

type intField struct {
	key   string
	value int
}

func (f intField) AddTo(e *zerolog.Event) { e.Int(f.key, f.value) }
func (f intField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Int(f.key, f.value)
}

type floatField struct {
	key   string
	value float64
}

func (f floatField) AddTo(e *zerolog.Event) { e.Float64(f.key, f.value) }
func (f floatField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Float64(f.key, f.value)
}

type boolField struct {
	key   string
	value bool
}

func (f boolField) AddTo(e *zerolog.Event) { e.Bool(f.key, f.value) }
func (f boolField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Bool(f.key, f.value)
}

type errorField struct {
	err error
}

func (f errorField) AddTo(e *zerolog.Event) { e.Err(f.err) }
func (f errorField) addToContext(c zerolog.Context) zerolog.Context {
	return c.AnErr(zerolog.ErrorFieldName, f.err)
}

type durationField struct {
	key   string
	value time.Duration
}

// durations are logged in milliseconds
func (f durationField) AddTo(e *zerolog.Event) { e.Int64(f.key, f.value.Milliseconds()) }
func (f durationField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Int64(f.key, f.value.Milliseconds())
}

func String(key, value string) Field                 { return stringField{key, value} }
func Int(key string, value int) Field                { return intField{key, value} }
func Float(key string, value float64) Field          { return floatField{key, value} }
func Bool(key string, value bool) Field              { return boolField{key, value} }
func Error(err error) Field                          { return errorField{err} }
func Duration(key string, value time.Duration) Field { return durationField{key, value} }
