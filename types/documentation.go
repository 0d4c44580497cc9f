package types

type DocumentationManager interface {
	Generate() error
	GetSpec() *OpenAPISpec
}

type OpenAPISpec struct {
	OpenAPI    string                    `json:"openapi"`
	Info       SpecInfo                  `json:"info"`
	Servers    []SpecServer              `json:"servers,omitempty"`
	Paths      map[string]*RoutePathItem `json:"paths"`
	Components *SpecComponents           `json:"components,omitempty"`
	Tags       []string                  `json:"tags,omitempty"`
}

type SpecInfo struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

type SpecServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type SpecComponents struct {
	Schemas map[string]*RouteSchema `json:"schemas,omitempty"`
}

type RoutePathItem struct {
	Get     *RouteOperation `json:"get,omitempty"`
	Head    *RouteOperation `json:"head,omitempty"`
	Post    *RouteOperation `json:"post,omitempty"`
	Put     *RouteOperation `json:"put,omitempty"`
	Delete  *RouteOperation `json:"delete,omitempty"`
	Options *RouteOperation `json:"options,omitempty"`
	Patch   *RouteOperation `json:"patch,omitempty"`
}

type RouteOperation struct {
	Summary     string                    `json:"summary,omitempty"`
	Description string                    `json:"description,omitempty"`
	Tags        []string                  `json:"tags,omitempty"`
	RequestBody *RouteRequestBody         `json:"requestBody,omitempty"`
	Responses   map[string]*RouteResponse `json:"responses"`
}

type RouteRequestBody struct {
	Description string                     `json:"description,omitempty"`
	Content     map[string]*RouteMediaType `json:"content"`
	Required    bool                       `json:"required,omitempty"`
}

type RouteMediaType struct {
	Schema *RouteSchema `json:"schema,omitempty"`
}

type RouteResponse struct {
	Description string                     `json:"description"`
	Content     map[string]*RouteMediaType `json:"content,omitempty"`
}

type RouteSchema struct {
	Type       string                  `json:"type,omitempty"`
	Format     string                  `json:"format,omitempty"`
	Properties map[string]*RouteSchema `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
	Items      *RouteSchema            `json:"items,omitempty"`
	Ref        string                  `json:"$ref,omitempty"`
}
