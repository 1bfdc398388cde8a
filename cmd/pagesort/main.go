// Command pagesort sorts a text file of numbers, one per line, that may be
// far larger than memory.
//
//	pagesort input.txt sorted.txt --workers 8 --quantiles 0.5,0.99
package main

func main() {
	execute()
}
