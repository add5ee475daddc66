package a

import (
	"fmt"
	stdlog "log"
	"os"
)

func report(err error) string {
	fmt.Println("failed:", err)      // want "use internal/logger instead of fmt.Println"
	fmt.Printf("failed: %v\n", err)  // want "use internal/logger instead of fmt.Printf"
	stdlog.Printf("failed: %v", err) // want "use internal/logger instead of log.Printf"

	fmt.Fprintln(os.Stderr, "failed:", err)
	return fmt.Sprintf("failed: %v", err)
}
