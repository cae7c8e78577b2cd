// Command evergreen opens the holiday particle scene.
package main

func main() {
	Execute()
}
