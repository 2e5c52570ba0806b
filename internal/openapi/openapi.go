// Package openapi builds the OpenAPI 3 description of the HTTP API from the
// same route table the router registers, so the published document cannot
// drift from the served routes.
//
// Request bodies and path parameters are derived from the typed request
// structs: `param` tags become path parameters, `json` fields become body
// properties, and `validate:"required"` marks a property as required.
package openapi

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deppfellow/userapi/internal/errs"
)

// DataShape describes the "data" member of a success envelope.
type DataShape int

const (
	// NoData is a pure acknowledgement without "data".
	NoData DataShape = iota
	// One is a single, possibly null, model object.
	One
	// Many is an array of model objects.
	Many
)

// Info is the document level metadata.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Operation describes one route.
type Operation struct {
	Method      string
	Path        string // Echo style, e.g. /api/user/:id
	ID          string
	Summary     string
	Description string
	Tags        []string

	// Request is a pointer to the route's request struct, or nil.
	Request interface{}

	SuccessStatus  int
	SuccessMessage string
	Data           DataShape
	// Model is a value of the data object type; required unless Data is NoData.
	Model interface{}

	// FailureMessage documents the 503 storage failure envelope.
	FailureMessage string
}

const (
	schemaPrefix        = "#/components/schemas/"
	validationErrorName = "ValidationError"
	storageErrorName    = "StorageError"
)

var (
	objectIDType = reflect.TypeOf(primitive.ObjectID{})
	echoParam    = regexp.MustCompile(`:([A-Za-z0-9_]+)`)
)

// Build produces a validated OpenAPI document for ops.
func Build(info Info, ops []Operation) (*openapi3.T, error) {
	b := &builder{
		doc: &openapi3.T{
			OpenAPI: "3.0.3",
			Info: &openapi3.Info{
				Title:       info.Title,
				Version:     info.Version,
				Description: info.Description,
			},
			Paths: openapi3.NewPaths(),
			Components: &openapi3.Components{
				Schemas: openapi3.Schemas{},
			},
		},
	}

	if err := b.registerErrorSchemas(); err != nil {
		return nil, err
	}

	for _, op := range ops {
		if err := b.addOperation(op); err != nil {
			return nil, fmt.Errorf("operation %s %s: %w", op.Method, op.Path, err)
		}
	}

	if err := b.doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return b.doc, nil
}

// PathTemplate converts an Echo route path to an OpenAPI path template.
func PathTemplate(path string) string {
	return echoParam.ReplaceAllString(path, "{$1}")
}

type builder struct {
	doc *openapi3.T
}

func (b *builder) generate(v interface{}) (*openapi3.SchemaRef, error) {
	return openapi3gen.NewSchemaRefForValue(v, openapi3.Schemas{}, openapi3gen.SchemaCustomizer(customizeSchema))
}

// component registers v under name once and returns a reference to it.
func (b *builder) component(name string, v interface{}) (*openapi3.SchemaRef, error) {
	if existing, ok := b.doc.Components.Schemas[name]; ok {
		return openapi3.NewSchemaRef(schemaPrefix+name, existing.Value), nil
	}

	ref, err := b.generate(v)
	if err != nil {
		return nil, fmt.Errorf("generate schema %s: %w", name, err)
	}
	b.doc.Components.Schemas[name] = ref
	return openapi3.NewSchemaRef(schemaPrefix+name, ref.Value), nil
}

func (b *builder) registerErrorSchemas() error {
	if _, err := b.component(validationErrorName, errs.HTTPError{}); err != nil {
		return err
	}

	storage := envelopeSchema(openapi3.NewObjectSchema().WithAnyAdditionalProperties())
	b.doc.Components.Schemas[storageErrorName] = openapi3.NewSchemaRef("", storage)
	return nil
}

func (b *builder) addOperation(op Operation) error {
	operation := openapi3.NewOperation()
	operation.OperationID = op.ID
	operation.Summary = op.Summary
	operation.Description = op.Description
	operation.Tags = op.Tags

	responses := []openapi3.NewResponsesOption{}

	if op.Request != nil {
		params, body, err := b.request(op.Request)
		if err != nil {
			return err
		}
		operation.Parameters = params
		if body != nil {
			operation.RequestBody = &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(body),
			}
		}

		validation := openapi3.NewResponse().
			WithDescription("Request validation failed").
			WithJSONSchemaRef(openapi3.NewSchemaRef(schemaPrefix+validationErrorName, b.doc.Components.Schemas[validationErrorName].Value))
		responses = append(responses, openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{Value: validation}))
	}

	success, err := b.successSchema(op)
	if err != nil {
		return err
	}
	responses = append(responses, openapi3.WithStatus(op.SuccessStatus, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(op.SuccessMessage).WithJSONSchema(success),
	}))

	if op.FailureMessage != "" {
		failure := openapi3.NewResponse().
			WithDescription(op.FailureMessage).
			WithJSONSchemaRef(openapi3.NewSchemaRef(schemaPrefix+storageErrorName, b.doc.Components.Schemas[storageErrorName].Value))
		responses = append(responses, openapi3.WithStatus(http.StatusServiceUnavailable, &openapi3.ResponseRef{Value: failure}))
	}

	operation.Responses = openapi3.NewResponses(responses...)
	b.doc.AddOperation(PathTemplate(op.Path), op.Method, operation)
	return nil
}

func (b *builder) successSchema(op Operation) (*openapi3.Schema, error) {
	if op.Data == NoData {
		return envelopeSchema(nil), nil
	}

	if op.Model == nil {
		return nil, fmt.Errorf("data shape %d needs a model", op.Data)
	}
	name := reflect.Indirect(reflect.ValueOf(op.Model)).Type().Name()
	ref, err := b.component(name, op.Model)
	if err != nil {
		return nil, err
	}

	if op.Data == Many {
		return envelopeSchema(openapi3.NewArraySchema().WithItems(ref.Value)), nil
	}

	// Copy so the shared component stays non-nullable.
	nullable := *ref.Value
	nullable.Nullable = true
	return envelopeSchema(&nullable), nil
}

// request derives path parameters and the JSON body schema from a request struct.
func (b *builder) request(req interface{}) (openapi3.Parameters, *openapi3.SchemaRef, error) {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("request must be a struct, got %s", t.Kind())
	}

	var params openapi3.Parameters
	hasBody := false
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if name := tagName(field, "param"); name != "" {
			params = append(params, &openapi3.ParameterRef{
				Value: openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()),
			})
		}
		if tagName(field, "json") != "" {
			hasBody = true
		}
	}

	if !hasBody {
		return params, nil, nil
	}

	body, err := b.generate(req)
	if err != nil {
		return nil, nil, fmt.Errorf("generate request schema: %w", err)
	}
	applyValidateTags(t, body.Value)
	body.Value.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}

	return params, body, nil
}

// applyValidateTags copies `required` and string `min` rules onto schema.
func applyValidateTags(t reflect.Type, schema *openapi3.Schema) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := tagName(field, "json")
		if name == "" {
			continue
		}

		for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
			key, param, _ := strings.Cut(rule, "=")
			switch key {
			case "required":
				schema.Required = append(schema.Required, name)
			case "min":
				prop, ok := schema.Properties[name]
				if !ok || prop.Value == nil || !prop.Value.Type.Is(openapi3.TypeString) {
					continue
				}
				if n, err := strconv.ParseUint(param, 10, 64); err == nil {
					prop.Value.MinLength = n
				}
			}
		}
	}
}

// envelopeSchema is {statusCode, message, data?}. A nil data schema omits "data".
func envelopeSchema(data *openapi3.Schema) *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("statusCode", openapi3.NewIntegerSchema()).
		WithProperty("message", openapi3.NewStringSchema())
	schema.Required = []string{"statusCode", "message"}

	if data != nil {
		schema.WithProperty("data", data)
	}
	return schema
}

// customizeSchema renders ObjectIDs as their 24 character hex form.
func customizeSchema(_ string, t reflect.Type, _ reflect.StructTag, schema *openapi3.Schema) error {
	if t == objectIDType {
		*schema = *openapi3.NewStringSchema().WithPattern("^[0-9a-fA-F]{24}$")
	}
	return nil
}

func tagName(field reflect.StructField, key string) string {
	name, _, _ := strings.Cut(field.Tag.Get(key), ",")
	if name == "-" {
		return ""
	}
	return name
}
