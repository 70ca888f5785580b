package nbstage_test

import (
	"fmt"
	"log"

	"github.com/calkit/nbstage"
	"github.com/calkit/nbstage/pkg/domain"
)

// Hosts observe run activity through the client's state broadcaster, for
// example to disable a "run" button while a stage executes.
func Example() {
	client, err := nbstage.New("")
	if err != nil {
		log.Fatal(err)
	}

	unsubscribe := client.States.Subscribe(func(s domain.RunState) {
		fmt.Printf("running=%v operation=%s\n", s.Running, s.Operation)
	})
	defer unsubscribe()

	client.States.SetRunning(true, "run stage")
	client.States.SetRunning(false, "")

	// Output:
	// running=true operation=run stage
	// running=false operation=
}
