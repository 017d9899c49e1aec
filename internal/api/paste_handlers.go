package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerPasteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "convertPaste",
		Method:      http.MethodPost,
		Path:        "/api/v1/paste",
		Summary:     "Convert pasted content",
		Description: "Converts pasted HTML to markdown; plain text passes through trimmed",
		Tags:        []string{"Paste"},
	}, s.handleConvertPaste)
}

// === DTOs ===

type PasteRequest struct {
	HTML string `json:"html" doc:"Raw clipboard content, HTML or plain text"`
}

type PasteInput struct {
	Body PasteRequest
}

type PasteResponse struct {
	Markdown  string `json:"markdown" doc:"Content ready for the prompt editor"`
	Converted bool   `json:"converted" doc:"Whether an HTML conversion happened"`
}

type PasteOutput struct {
	Body PasteResponse
}

// === Handlers ===

func (s *Server) handleConvertPaste(_ context.Context, input *PasteInput) (*PasteOutput, error) {
	markdown, converted, err := s.services.Paste.Convert(input.Body.HTML)
	if err != nil {
		return nil, err
	}

	return &PasteOutput{Body: PasteResponse{Markdown: markdown, Converted: converted}}, nil
}
