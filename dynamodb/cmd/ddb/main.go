// ddb works with schema_dynamodb.yaml files from the command line.
//
// # Installation
//
//	go install github.com/acksell/ddbtoolbox/dynamodb/cmd/ddb@latest
//
// # Commands
//
//	ddb check    Validate schema files
//	ddb parse    Parse a JSON item into its stored form
//	ddb format   Format a stored JSON item
//	ddb get      Fetch an item through an entity
//	ddb put      Write an item through an entity
//
// Items are read as JSON from stdin, or from the file given with -in.
package main

import (
	"fmt"
	"os"
)

const version = "0.2.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "check":
		err = runCheck(args, std)
	case "parse":
		err = runParse(args, std)
	case "format":
		err = runFormat(args, std)
	case "get":
		err = runGet(args, std)
	case "put":
		err = runPut(args, std)
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Printf("ddb version %s\n", version)
		return
	default:
		fmt.Fprintf(os.Stderr, "ddb: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ddb %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ddb - DynamoDB schema tools

Usage:
  ddb <command> [flags]

Commands:
  check   Validate schema files
  parse   Parse a JSON item into its stored form
  format  Format a stored JSON item
  get     Fetch an item through an entity
  put     Write an item through an entity

Examples:
  # Validate every schema_dynamodb.yaml below the current directory:
  ddb check

  # Show what a put would store:
  echo '{"id": "1", "email": "ada@example.com"}' | ddb parse -entity user

  # Read an item using the default AWS credentials:
  echo '{"id": "1"}' | ddb get -entity user

Configuration (optional):
  Create ddb.yaml for defaults:

    schema: ./schema_dynamodb.yaml
    logLevel: debug

Run 'ddb <command> --help' for more information on a command.`)
}
