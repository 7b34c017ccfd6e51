package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerNotebooksResource(srv, svc)
	registerNotebookTemplate(srv, svc)
}

func registerNotebooksResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"nbook://notebooks",
		"Notebooks",
		mcp.WithResourceDescription("All stored notebooks with cell counts."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		summaries, err := svc.ListNotebooks(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"notebooks": summaries,
			"count":     len(summaries),
		})
	})
}

func registerNotebookTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"nbook://notebooks/{name}",
		"Notebook Cells",
		mcp.WithTemplateDescription("Cells of a single notebook in order."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name, _ := request.Params.Arguments["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("notebook name is required")
		}
		dto, err := svc.GetNotebook(ctx, name)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
