// Package tools exposes the adverse-event queries as MCP tools so assistants
// can call them over the /mcp SSE endpoint.
package tools

import (
	"encoding/json"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/giygas/adverse-events-api/interfaces"
)

const (
	serverName    = "openfda-adverse-events"
	serverVersion = "v1.0.0"
)

// Server owns the MCP server and the services its tools call.
type Server struct {
	service   interfaces.QueryService
	validator interfaces.InputValidator
	mcpServer *mcp.Server
}

// NewServer creates the MCP server and registers every tool.
func NewServer(service interfaces.QueryService, validator interfaces.InputValidator) *Server {
	s := &Server{
		service:   service,
		validator: validator,
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Handler serves both the SSE stream (GET) and client messages (POST).
func (s *Server) Handler() http.Handler {
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

const drugProperty = `"drug_name": {
						"type": "string",
						"description": "Brand or generic drug name, e.g. Tylenol or acetaminophen."
					}`

const limitProperty = `"limit": {
						"type": "integer",
						"minimum": 1,
						"maximum": 1000,
						"description": "Maximum number of rows to return. Omit for the default."
					}`

const eventProperty = `"event_name": {
						"type": "string",
						"description": "Adverse reaction term (MedDRA preferred term), e.g. nausea."
					}`

func schema(properties string, required ...string) json.RawMessage {
	req, _ := json.Marshal(required)
	return json.RawMessage(`{
				"type": "object",
				"properties": {` + properties + `},
				"required": ` + string(req) + `
			}`)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "top_adverse_events",
			Description: "Rank the adverse reactions most often reported to FDA FAERS for a drug, optionally filtered by patient sex and age. Reports do not prove causation.",
			InputSchema: schema(drugProperty+`,
					"patient_sex": {
						"type": "string",
						"enum": ["All", "Male", "Female"],
						"description": "Filter by patient sex. Defaults to All."
					},
					"min_age": {
						"type": "integer",
						"minimum": 0,
						"maximum": 120,
						"description": "Minimum patient age at onset, in years."
					},
					"max_age": {
						"type": "integer",
						"minimum": 0,
						"maximum": 120,
						"description": "Maximum patient age at onset, in years."
					},
					`+limitProperty, "drug_name"),
		},
		s.handleTopEvents,
	)

	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "serious_outcomes",
			Description: "Count serious FAERS reports for a drug by outcome: death, life threatening, hospitalization, disability, congenital anomaly, other.",
			InputSchema: schema(drugProperty+`,
					`+limitProperty, "drug_name"),
		},
		s.handleSeriousOutcomes,
	)

	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "reaction_outcomes",
			Description: "Break down a drug's reported reactions by outcome (recovered, recovering, not recovered, fatal...).",
			InputSchema: schema(drugProperty+`,
					`+limitProperty, "drug_name"),
		},
		s.handleReactionOutcomes,
	)

	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "drug_event_frequency",
			Description: "Count FAERS reports that mention both a drug and an adverse event, and the share of all reports for the drug.",
			InputSchema: schema(drugProperty+`,
					`+eventProperty, "drug_name", "event_name"),
		},
		s.handlePairFrequency,
	)

	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "event_time_series",
			Description: "Show how reports of a drug/event combination evolved over time, summed per year or quarter.",
			InputSchema: schema(drugProperty+`,
					`+eventProperty+`,
					"aggregation": {
						"type": "string",
						"enum": ["yearly", "quarterly"],
						"description": "Bucket size. Defaults to yearly."
					}`, "drug_name", "event_name"),
		},
		s.handleTimeSeries,
	)

	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "report_sources",
			Description: "Break down a drug's FAERS reports by the qualification of the person who reported them (physician, pharmacist, consumer...).",
			InputSchema: schema(drugProperty+`,
					`+limitProperty, "drug_name"),
		},
		s.handleReportSources,
	)
}
