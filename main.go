// =============================================================================
// Event Ledger - Main Entry Point
// =============================================================================
//
// USAGE:
//   eventledger analyze   - Analyze one ledger and print or write the report
//   eventledger process   - Analyze every ledger in the input directory
//   eventledger validate  - Validate the configuration and, optionally, a ledger
//   eventledger version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : ledger parsing, categorization, allocation, liquidity,
//                  audit, validation and report writers
//   - pkg/       : file management for batch runs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/eventledger/cmd"
)

func main() {
	cmd.Execute()
}
