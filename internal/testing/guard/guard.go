package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("BASTION_TEST_MODE") == "" {
			_ = os.Setenv("BASTION_TEST_MODE", "1")
		}
	})
}
