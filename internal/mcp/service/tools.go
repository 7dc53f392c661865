package service

import (
	"github.com/dyadlab/interaction/internal/mcp/domain"
	"github.com/dyadlab/interaction/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerDominanceTools(mcpServer *mcp.Server, seedFunc domain.SeedFunc) {
	mcp.AddTool(mcpServer, domain.ScoreTool(), domain.ScoreHandler())
	mcp.AddTool(mcpServer, domain.SampleTool(), domain.SampleHandler(seedFunc))
	mcp.AddTool(mcpServer, domain.ExactTool(), domain.ExactHandler())
	mcp.AddTool(mcpServer, domain.MetadataTool(), domain.MetadataHandler())
}

func registerRunTools(mcpServer *mcp.Server, store storage.RunStore, seedFunc domain.SeedFunc) {
	mcp.AddTool(mcpServer, domain.InferTool(), domain.InferHandler(store, seedFunc))
	mcp.AddTool(mcpServer, domain.ReplayTool(), domain.ReplayHandler(store))
}

// registerRunResources registers readable run MCP resources.
func registerRunResources(mcpServer *mcp.Server, store storage.RunStore) {
	mcpServer.AddResource(domain.RunListResource(), domain.RunListResourceHandler(store))
}
