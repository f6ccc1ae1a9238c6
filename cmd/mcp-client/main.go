package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client ./opswatch mcp --config opswatch.yaml")
		os.Exit(2)
	}

	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "opswatch-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to opswatch MCP server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools             - List available tools")
	fmt.Println("  /dashboard         - Fleet stats, hosts and problems")
	fmt.Println("  /hosts             - Hosts with health status")
	fmt.Println("  /problems          - Active problems")
	fmt.Println("  /logs [all] [n]    - Classified security logs")
	fmt.Println("  /health            - Upstream reachability")
	fmt.Println("  /exit              - Exit the client")
	fmt.Println()

	// Interactive REPL
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/exit":
			fmt.Println("Goodbye!")
			return
		case "/tools":
			listTools(ctx, session)
			continue
		}

		tool, toolArgs, err := parseCommand(input)
		if err != nil {
			fmt.Println(err)
			continue
		}
		callTool(ctx, session, tool, toolArgs)
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

// parseCommand maps a REPL line to a tool name and its arguments.
func parseCommand(input string) (string, map[string]any, error) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("empty command")
	}
	args := map[string]any{}
	switch parts[0] {
	case "/dashboard":
		return "get_dashboard", args, nil
	case "/hosts":
		return "get_hosts", args, nil
	case "/problems":
		return "get_problems", args, nil
	case "/health":
		return "get_health", args, nil
	case "/logs":
		for _, p := range parts[1:] {
			if p == "all" {
				args["all"] = true
				continue
			}
			n, err := strconv.Atoi(p)
			if err != nil || n <= 0 {
				return "", nil, fmt.Errorf("usage: /logs [all] [limit]")
			}
			args["limit"] = n
		}
		return "get_security_logs", args, nil
	}
	return "", nil, fmt.Errorf("unknown command %q (try /tools)", parts[0])
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}

	printResult(result)
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("❌ Error: ")
	} else {
		fmt.Printf("✅ Result: ")
	}

	if result.StructuredContent != nil && !result.IsError {
		if jsonData, err := json.MarshalIndent(result.StructuredContent, "", "  "); err == nil {
			fmt.Println(string(jsonData))
			fmt.Println()
			return
		}
	}

	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
