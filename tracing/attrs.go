package tracing

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/iancoleman/strcase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tagName = "trace"

// Attributed lets a type declare its own span attributes instead of the
// reflective field walk.
type Attributed interface {
	Attributes() []attribute.KeyValue
}

// TraceValue adds a single attribute to the current span. It is a no-op
// when the span is not recording.
func TraceValue(ctx context.Context, name string, val any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if av, ok := attributeValue(reflect.ValueOf(val)); ok {
		span.SetAttributes(attribute.KeyValue{
			Key:   attribute.Key(name),
			Value: av,
		})
	}
}

// TraceAny attaches obj's attributes to the current span, either through
// the Attributed interface or by walking its exported fields.
func TraceAny(ctx context.Context, prefix string, obj any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if attributed, ok := obj.(Attributed); ok {
		span.SetAttributes(attributed.Attributes()...)
		return
	}
	span.SetAttributes(AttributesFrom(prefix, obj)...)
}

// Error records err on the current span and marks the span failed.
func Error(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AttributesFrom converts obj's exported struct fields into attributes
// named "prefix.field_name" with field names converted to snake case.
// A `trace:"-"` tag skips the field, any other trace tag overrides the
// name.
func AttributesFrom(prefix string, obj any) []attribute.KeyValue {
	if obj == nil {
		return nil
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	if prefix != "" {
		prefix += "."
	}

	rt := rv.Type()
	attrs := make([]attribute.KeyValue, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get(tagName)
		if name == "-" {
			continue
		}
		if name == "" {
			name = strcase.ToSnake(field.Name)
		}
		if av, ok := attributeValue(rv.Field(i)); ok {
			attrs = append(attrs, attribute.KeyValue{
				Key:   attribute.Key(prefix + name),
				Value: av,
			})
		}
	}
	return attrs
}

func attributeValue(v reflect.Value) (attribute.Value, bool) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return attribute.Value{}, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		return attribute.StringValue(v.String()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return attribute.Int64Value(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return attribute.Int64Value(int64(v.Uint())), true
	case reflect.Float32, reflect.Float64:
		return attribute.Float64Value(v.Float()), true
	case reflect.Bool:
		return attribute.BoolValue(v.Bool()), true
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return attribute.Value{}, false
		}
		return attribute.StringValue(string(data)), true
	default:
		return attribute.Value{}, false
	}
}
