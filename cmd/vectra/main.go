// cmd/vectra/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"vectra/internal/arith"
	"vectra/internal/dataframe"
	"vectra/internal/scenario"
	"vectra/internal/server"
	"vectra/internal/sqlsource"
)

const VERSION = "1.0.0"

// Build variables - can be set during build with ldflags
var (
	BuildDate = time.Now().Format("2006-01-02")
	GitCommit = "unknown"
)

// Command aliases mapping
var commandAliases = map[string]string{
	"e": "exec",
	"s": "serve",
	"i": "ingest",
	"v": "verify",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
		args[0] = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		if len(args) > 1 {
			showCommandHelp(args[1])
		} else {
			showUsage()
		}
		return
	}

	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		showVersion()
		return
	}

	switch cmd {
	case "exec":
		runExec(args[1:])
	case "serve":
		runServe(args[1:])
	case "ingest":
		runIngest(args[1:])
	case "verify":
		runVerify(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

// runExec applies an operator to two JSON-encoded nested-list operands read
// from the command line, printing the result column as nested JSON. Example:
//
//	vectra exec add '[[1,2],[3]]' '[[10,20],[30]]'
func runExec(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: vectra exec <op> <lhs-json> <rhs-json>")
		os.Exit(1)
	}

	op, err := parseOp(args[0])
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	lhs, err := sqlsource.ColumnFromJSON("lhs", args[1])
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	rhs, err := sqlsource.ColumnFromJSON("rhs", args[2])
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	result, err := dataframe.NewNestedArray(lhs).Apply(op, dataframe.NewNestedArray(rhs))
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Println(sqlsource.ColumnToJSON(result.Column()))
}

func runServe(args []string) {
	addr := ":8080"
	if len(args) > 0 {
		addr = args[0]
	}
	srv := server.New()
	log.Printf("vectra serve listening on %s", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runIngest(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: vectra ingest <driver> <dsn> <query>")
		os.Exit(1)
	}
	driver, dsn, query := args[0], args[1], args[2]

	src, err := sqlsource.Open(driver, dsn)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer src.Close()

	col, err := src.QueryColumn(query, "value")
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	fmt.Println(sqlsource.ColumnToJSON(col))
}

func runVerify(args []string) {
	verbose := len(args) > 0 && args[0] == "-v"
	runner := scenario.NewRunner(verbose)
	scenario.RegisterBuiltins(runner)

	stats := runner.Run()
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

func parseOp(s string) (arith.Op, error) {
	switch s {
	case "add", "+":
		return arith.OpAdd, nil
	case "sub", "-":
		return arith.OpSub, nil
	case "mul", "*":
		return arith.OpMul, nil
	case "div", "/":
		return arith.OpDiv, nil
	case "mod", "%":
		return arith.OpRem, nil
	case "floordiv", "//":
		return arith.OpFloorDiv, nil
	default:
		if n, err := strconv.Atoi(s); err == nil {
			return arith.Op(n), nil
		}
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}

func showUsage() {
	fmt.Println(`vectra - nested-list arithmetic engine

Usage:
  vectra <command> [arguments]

Commands:
  exec <op> <lhs> <rhs>       run one of add/sub/mul/div/mod/floordiv over two JSON nested-list operands
  serve [addr]                serve the HTTP/WebSocket execution API (default :8080)
  ingest <driver> <dsn> <q>   load a column from a SQL data source into a nested-list column
  verify [-v]                 run the built-in scenario and property suite

Aliases: e=exec, s=serve, i=ingest, v=verify

Use "vectra help <command>" for more information about a command.`)
}

func showCommandHelp(cmd string) {
	switch cmd {
	case "exec":
		fmt.Println("vectra exec <op> <lhs-json> <rhs-json> - apply op elementwise to two nested-list operands")
	case "serve":
		fmt.Println("vectra serve [addr] - serve the HTTP/WebSocket execution API")
	case "ingest":
		fmt.Println("vectra ingest <driver> <dsn> <query> - load a column from sqlite/postgres/mysql/sqlserver")
	case "verify":
		fmt.Println("vectra verify [-v] - run the built-in scenario and property suite")
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		showUsage()
	}
}

func showVersion() {
	fmt.Printf("vectra version %s (built %s, commit %s)\n", VERSION, BuildDate, GitCommit)
}
