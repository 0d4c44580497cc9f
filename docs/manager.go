package docs

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/app"
	"github.com/saiset-co/sai-dispatch/types"
	"github.com/saiset-co/sai-dispatch/utils"
)

// DocumentationManager builds an OpenAPI document from the route table
// snapshot. It is an offline, textual concern: generation walks the
// snapshot once and never touches the dispatch path.
type DocumentationManager struct {
	logger  types.Logger
	name    string
	version string
	source  types.RouteSource
	mu      sync.RWMutex
	spec    *types.OpenAPISpec
	running int32
}

func NewDocumentationManager(logger types.Logger, name, version string, source types.RouteSource) *DocumentationManager {
	return &DocumentationManager{
		logger:  logger,
		name:    name,
		version: version,
		source:  source,
	}
}

// RegisterRoutes exposes the generated document at path through the routing
// API.
func (dm *DocumentationManager) RegisterRoutes(a *app.Application, path string) error {
	return a.Route("GET", path, dm.handleOpenAPIJSON).WithoutHead().Register()
}

func (dm *DocumentationManager) Start() error {
	if !atomic.CompareAndSwapInt32(&dm.running, 0, 1) {
		return types.ErrServerAlreadyRunning
	}
	return dm.Generate()
}

func (dm *DocumentationManager) Stop() error {
	if !atomic.CompareAndSwapInt32(&dm.running, 1, 0) {
		return types.ErrServerNotRunning
	}
	return nil
}

func (dm *DocumentationManager) IsRunning() bool {
	return atomic.LoadInt32(&dm.running) == 1
}

func (dm *DocumentationManager) Generate() error {
	routes := dm.source.Routes()

	spec := &types.OpenAPISpec{
		OpenAPI: "3.0.3",
		Info: types.SpecInfo{
			Title:       dm.name,
			Version:     dm.version,
			Description: fmt.Sprintf("%s API documentation", dm.name),
		},
		Paths: make(map[string]*types.RoutePathItem),
		Tags:  dm.generateTags(routes),
		Components: &types.SpecComponents{
			Schemas: dm.generateSchemas(routes),
		},
	}

	for _, route := range routes {
		if route.Config == nil || route.Config.Doc == nil {
			continue
		}

		operation := dm.generateOperation(route.Config.Doc)
		pathItem, ok := spec.Paths[route.Config.Doc.Path]
		if !ok {
			pathItem = &types.RoutePathItem{}
			spec.Paths[route.Config.Doc.Path] = pathItem
		}
		attachOperation(pathItem, route.Method, operation)
	}

	dm.mu.Lock()
	dm.spec = spec
	dm.mu.Unlock()

	dm.logger.Info("OpenAPI documentation generated",
		zap.Int("routes", len(routes)),
		zap.Int("paths", len(spec.Paths)),
		zap.Int("schemas", len(spec.Components.Schemas)))

	return nil
}

func (dm *DocumentationManager) GetSpec() *types.OpenAPISpec {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.spec
}

func (dm *DocumentationManager) handleOpenAPIJSON(req *types.Request, resp *types.Response) types.ControlSignal {
	spec := dm.GetSpec()
	if spec == nil {
		if err := dm.Generate(); err != nil {
			resp.StatusCode = 500
			return types.Forward
		}
		spec = dm.GetSpec()
	}

	body, err := utils.Marshal(spec)
	if err != nil {
		dm.logger.Error("Failed to marshal OpenAPI spec",
			zap.String("correlation_id", req.CorrelationID),
			zap.Error(err))
		resp.StatusCode = 500
		return types.Forward
	}

	resp.StatusCode = 200
	resp.ContentType = "application/json"
	resp.Body = body
	return types.Forward
}

func (dm *DocumentationManager) generateTags(routes map[string]*types.Route) []string {
	seen := make(map[string]bool)
	var tags []string

	for _, route := range routes {
		if route.Config == nil || route.Config.Doc == nil || route.Config.Doc.DocTag == "" {
			continue
		}
		if !seen[route.Config.Doc.DocTag] {
			seen[route.Config.Doc.DocTag] = true
			tags = append(tags, route.Config.Doc.DocTag)
		}
	}

	sort.Strings(tags)
	return tags
}

func (dm *DocumentationManager) generateOperation(doc *types.DocConfig) *types.RouteOperation {
	operation := &types.RouteOperation{
		Summary:     doc.DocTitle,
		Description: doc.DocDescription,
		Responses:   dm.generateResponses(doc),
	}

	if doc.DocTag != "" {
		operation.Tags = []string{doc.DocTag}
	}

	if doc.Method != "GET" && doc.DocRequestType != nil {
		operation.RequestBody = &types.RouteRequestBody{
			Required: true,
			Content: map[string]*types.RouteMediaType{
				"application/json": {
					Schema: schemaRef(doc.DocRequestType),
				},
			},
		}
	}

	return operation
}

func (dm *DocumentationManager) generateResponses(doc *types.DocConfig) map[string]*types.RouteResponse {
	responses := map[string]*types.RouteResponse{
		"404": {Description: "Not Found"},
		"500": {Description: "Internal Server Error"},
	}

	ok := &types.RouteResponse{Description: "OK"}
	if doc.DocResponseType != nil {
		ok.Content = map[string]*types.RouteMediaType{
			"application/json": {
				Schema: schemaRef(doc.DocResponseType),
			},
		}
	}
	responses["200"] = ok

	return responses
}

func (dm *DocumentationManager) generateSchemas(routes map[string]*types.Route) map[string]*types.RouteSchema {
	schemas := make(map[string]*types.RouteSchema)

	for _, route := range routes {
		if route.Config == nil || route.Config.Doc == nil {
			continue
		}
		collectSchema(schemas, route.Config.Doc.DocRequestType)
		collectSchema(schemas, route.Config.Doc.DocResponseType)
	}

	return schemas
}

func collectSchema(schemas map[string]*types.RouteSchema, t reflect.Type) {
	t = deref(t)
	if t == nil || t.Kind() != reflect.Struct {
		return
	}
	if _, exists := schemas[t.Name()]; exists {
		return
	}

	schema := &types.RouteSchema{
		Type:       "object",
		Properties: make(map[string]*types.RouteSchema),
	}
	schemas[t.Name()] = schema

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := fieldName(field)
		if name == "" {
			continue
		}

		schema.Properties[name] = schemaOf(field.Type, schemas)

		if strings.Contains(field.Tag.Get("validate"), "required") {
			schema.Required = append(schema.Required, name)
		}
	}
}

func schemaOf(t reflect.Type, schemas map[string]*types.RouteSchema) *types.RouteSchema {
	t = deref(t)
	if t == nil {
		return &types.RouteSchema{}
	}

	switch t.Kind() {
	case reflect.String:
		return &types.RouteSchema{Type: "string"}
	case reflect.Bool:
		return &types.RouteSchema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &types.RouteSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &types.RouteSchema{Type: "number"}
	case reflect.Slice, reflect.Array:
		return &types.RouteSchema{
			Type:  "array",
			Items: schemaOf(t.Elem(), schemas),
		}
	case reflect.Struct:
		collectSchema(schemas, t)
		return &types.RouteSchema{Ref: "#/components/schemas/" + t.Name()}
	default:
		return &types.RouteSchema{Type: "object"}
	}
}

func schemaRef(t reflect.Type) *types.RouteSchema {
	t = deref(t)
	if t == nil {
		return &types.RouteSchema{Type: "object"}
	}
	if t.Kind() == reflect.Struct {
		return &types.RouteSchema{Ref: "#/components/schemas/" + t.Name()}
	}
	return schemaOf(t, make(map[string]*types.RouteSchema))
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func fieldName(field reflect.StructField) string {
	jsonTag := field.Tag.Get("json")
	if jsonTag == "-" {
		return ""
	}
	if jsonTag != "" {
		if comma := strings.Index(jsonTag, ","); comma >= 0 {
			jsonTag = jsonTag[:comma]
		}
		if jsonTag != "" {
			return jsonTag
		}
	}
	return field.Name
}

func attachOperation(pathItem *types.RoutePathItem, method string, operation *types.RouteOperation) {
	switch strings.ToUpper(method) {
	case "GET":
		pathItem.Get = operation
	case "HEAD":
		pathItem.Head = operation
	case "POST":
		pathItem.Post = operation
	case "PUT":
		pathItem.Put = operation
	case "DELETE":
		pathItem.Delete = operation
	case "OPTIONS":
		pathItem.Options = operation
	case "PATCH":
		pathItem.Patch = operation
	}
}
