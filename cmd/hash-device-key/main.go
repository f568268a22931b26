// Command hash-device-key prints the bcrypt hash for a device key so it
// can be placed in DEVICE_KEY_HASH during terminal provisioning.
package main

import (
	"fmt"
	"log"
	"os"

	"ponselpos/backend/internal/httpapi"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <device-key>\n", os.Args[0])
		os.Exit(2)
	}
	hash, err := httpapi.HashDeviceKey(os.Args[1])
	if err != nil {
		log.Fatalf("hash device key: %v", err)
	}
	fmt.Println(hash)
}
