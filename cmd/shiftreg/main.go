// Command shiftreg reads a 74HC165 shift register chain over three GPIO lines.
package main

func main() {
	Execute()
}
