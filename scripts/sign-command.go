package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/service"
)

// Dev helper: prints a signed /api/command/send body for manual testing.
func main() {
	if len(os.Args) < 4 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/sign-command.go <pairing-id> <command-type> <hmac-secret>\n")
		os.Exit(1)
	}

	pairingID, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid pairing id: %v\n", err)
		os.Exit(1)
	}

	cmdType := model.CommandType(os.Args[2])
	if !cmdType.Valid() {
		fmt.Fprintf(os.Stderr, "Error: unknown command type %q\n", os.Args[2])
		os.Exit(1)
	}

	signed := service.SignCommand(pairingID, cmdType, os.Args[3])

	body, err := json.MarshalIndent(map[string]any{
		"pairing_id":   pairingID,
		"command_type": cmdType,
		"nonce":        signed.Nonce,
		"hmac":         signed.Signature,
	}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(body))
}
