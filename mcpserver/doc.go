// Package mcpserver exposes the evaluation service over the Model Context
// Protocol (MCP).
//
// Two tools are registered with the mark3labs/mcp-go server:
// evaluate_submission runs and scores a submission and stores the report,
// get_evaluation fetches a stored report by id. Both answer with the same
// JSON bodies as the REST API, as text content; failures set IsError.
//
// The server speaks stdio or streamable HTTP depending on server.transport.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, service)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
