package binder

import (
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/listenlog/listenlog/pkg/errcodes"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
)

const (
	// ContextAllowUnknownFields can be set on the echo context (or through
	// AllowUnknownFields) to accept JSON keys that the payload struct
	// doesn't declare.
	ContextAllowUnknownFields = "allow_unknown_fields"
	// ContextAllowEmptyBody lets POST/PUT requests through without a body.
	ContextAllowEmptyBody = "allow_empty_body"
)

var unknownFieldsRE = regexp.MustCompile(`^json: unknown field "(.*)"$`)

// Binder implements echo.Binder. It decodes the payload, runs mold
// modifiers, applies defaults, then validates.
type Binder struct {
	queryDecoder        *schema.Decoder
	lenientQueryDecoder *schema.Decoder
	conform             *mold.Transformer
	validate            *validator.Validate
}

func New() (*Binder, error) {
	queryDecoder := schema.NewDecoder()
	queryDecoder.SetAliasTag("query")
	queryDecoder.IgnoreUnknownKeys(false)

	lenientQueryDecoder := schema.NewDecoder()
	lenientQueryDecoder.SetAliasTag("query")
	lenientQueryDecoder.IgnoreUnknownKeys(true)

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation(date, dateValidator); err != nil {
		return nil, errors.WithStack(err)
	}

	return &Binder{queryDecoder, lenientQueryDecoder, modifiers.New(), validate}, nil
}

// AllowUnknownFields is route middleware that relaxes JSON and query
// decoding for clients that send whole records back.
func AllowUnknownFields(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(ContextAllowUnknownFields, true)
		return next(c)
	}
}

// AllowEmptyBody is route middleware for writes whose handler decides what a
// missing body means.
func AllowEmptyBody(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(ContextAllowEmptyBody, true)
		return next(c)
	}
}

func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()

	switch {
	case req.ContentLength != 0 && req.Body != nil && req.Body != http.NoBody:
		ctype := req.Header.Get(echo.HeaderContentType)
		if !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
			return errcodes.UnsupportedMediaType()
		}
		if err := b.decodeJSON(i, c); err != nil {
			return err
		}
	case req.Method == http.MethodGet || req.Method == http.MethodDelete || req.Method == http.MethodHead:
		dec := b.queryDecoder
		if allow, _ := c.Get(ContextAllowUnknownFields).(bool); allow {
			dec = b.lenientQueryDecoder
		}
		if err := decodeQuery(dec, i, c.QueryParams()); err != nil {
			return err
		}
	default:
		if allow, _ := c.Get(ContextAllowEmptyBody).(bool); !allow {
			return errcodes.EmptyRequestBody()
		}
	}

	if err := b.conform.Struct(req.Context(), i); err != nil {
		return errors.WithStack(err)
	}

	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	if err := b.validate.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return errcodes.ValidationError(formatValidationError(errs[0]))
		}
		return errors.WithStack(err)
	}
	return nil
}

func (b *Binder) decodeJSON(i interface{}, c echo.Context) error {
	req := c.Request()
	defer req.Body.Close()

	dec := json.NewDecoder(req.Body)
	if allow, _ := c.Get(ContextAllowUnknownFields).(bool); !allow {
		dec.DisallowUnknownFields()
	}

	err := dec.Decode(i)
	if err == nil {
		return nil
	}

	if matches := unknownFieldsRE.FindStringSubmatch(err.Error()); len(matches) > 1 {
		return errcodes.UnknownParameter(matches[1])
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return errcodes.ValidationTypeError(formatUnmarshalTypeError(typeErr))
	}

	logger.FromEchoContext(c).Err(err).Warn("unable to decode json payload")

	return errcodes.MalformedPayload()
}

func decodeQuery(dec *schema.Decoder, i interface{}, params url.Values) error {
	err := dec.Decode(i, params)
	if err == nil {
		return nil
	}

	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return errors.WithStack(err)
	}
	for _, fieldErr := range multi {
		var conversionErr schema.ConversionError
		if errors.As(fieldErr, &conversionErr) {
			return errcodes.ValidationTypeError(formatSchemaConversionError(conversionErr))
		}
		var unknownErr schema.UnknownKeyError
		if errors.As(fieldErr, &unknownErr) {
			return errcodes.UnknownParameter(unknownErr.Key)
		}
		return errors.WithStack(fieldErr)
	}
	return errors.WithStack(err)
}
