package key_test

import (
	"fmt"

	"github.com/matzehuels/chaoscrypt/pkg/key"
)

func ExampleDivisors() {
	fmt.Println(key.Divisors(12))
	fmt.Println(key.Divisors(13))
	// Output:
	// [2 3 4 6]
	// []
}

func ExampleGenerate() {
	k, err := key.Generate(512)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(k.Sum(), k.Validate(512) == nil)
	// Output: 512 true
}
