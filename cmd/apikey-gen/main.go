package main

import (
	"flag"
	"fmt"
	"log"

	"tapmove.backend/pkg/crypto"
)

// apikey-gen mints a merchant API key out of band, for operators seeding a
// merchant row directly. The plaintext goes to the merchant; only the hash
// belongs in the database.
func main() {
	count := flag.Int("n", 1, "number of keys to generate")
	flag.Parse()

	if *count <= 0 {
		log.Fatalf("invalid count: %d", *count)
	}

	for i := 0; i < *count; i++ {
		key, hash, err := crypto.GenerateAPIKey()
		if err != nil {
			log.Fatalf("failed to generate api key: %v", err)
		}
		fmt.Printf("API_KEY=%s\n", key)
		fmt.Printf("API_KEY_HASH=%s\n", hash)
	}
}
