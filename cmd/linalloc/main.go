// Command linalloc replays allocation scripts against the linalloc arena
// and stack allocators and answers alignment questions.
package main

func main() {
	execute()
}
