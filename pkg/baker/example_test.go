package baker_test

import (
	"fmt"

	"github.com/matzehuels/chaoscrypt/pkg/baker"
	"github.com/matzehuels/chaoscrypt/pkg/grid"
	"github.com/matzehuels/chaoscrypt/pkg/key"
	"github.com/matzehuels/chaoscrypt/pkg/transform"
)

func ExampleEncrypt() {
	g := grid.Sequential(4)
	k := key.New(2, 2)

	scrambled, err := baker.Encrypt(g, 4, k, transform.Horizontal)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, row := range scrambled.Rows() {
		fmt.Println(row)
	}

	restored, _ := baker.Decrypt(scrambled, 4, k, transform.Horizontal)
	fmt.Println(restored.Equal(g))
	// Output:
	// [6 2 7 3]
	// [14 10 15 11]
	// [4 0 5 1]
	// [12 8 13 9]
	// true
}
