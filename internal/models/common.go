package models

// GraphQLRequest is the body posted to a GraphQL endpoint
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLError is a single entry of a GraphQL "errors" array
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLResponse is the standard GraphQL response envelope
type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
