// Command server runs the coaching resource API.
//
// Usage:
//
//	server serve --config config.yaml
//	server migrate up
//	server version
package main

func main() {
	Execute()
}
