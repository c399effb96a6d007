package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	wire "gitlab.com/dirk.krummacker/phonebook/pkg/model"
)

// waitInterval is the time between two checks whether the service is up.
const waitInterval = 5 * time.Second

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080 -wait
//
// The service should run with rate limiting turned off (server.rate_limit_rps: 0).
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "the address of the phonebook service")
	wait := flag.Bool("wait", false, "wait until the service is available before the benchmark")
	waitOnly := flag.Bool("wait-only", false, "only wait until the service is available")
	flag.Parse()

	if *wait || *waitOnly {
		waitUntilAvailable(*baseURL)
	}
	if *waitOnly {
		return
	}
	benchmark(*baseURL)
}

// waitUntilAvailable polls the service until it answers.
func waitUntilAvailable(baseURL string) {
	totalWaitTime := 0
	for {
		res, err := http.Get(baseURL + "/birthdays")
		if err == nil {
			_ = res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println("service is available")
				return
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		totalWaitTime += int(waitInterval / time.Second)
		fmt.Printf("Waiting %d seconds\n", totalWaitTime)
		time.Sleep(waitInterval)
	}
}

// benchmark prints the average duration in microseconds of POST, PUT, GET and DELETE requests
// for growing numbers of contacts.
func benchmark(baseURL string) {
	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	sizes := []int{1000, 5000, 10000, 50000, 100000}
	for _, loops := range sizes {
		names := createRandomSliceWithNames(loops)
		fmt.Printf("%10d", loops)
		{
			// POST requests
			f := func(name string) int64 {
				return sendRequest(http.MethodPost, baseURL+"/contacts", contactBody(name))
			}
			callInLoop(names, f)
		}
		{
			// PUT requests
			f := func(name string) int64 {
				body, _ := json.Marshal(wire.BirthdayUpdate{Birthday: "0027-11-09"})
				return sendRequest(http.MethodPut, contactURL(baseURL, name)+"/birthday", bytes.NewReader(body))
			}
			callInLoop(names, f)
		}
		{
			// GET requests
			f := func(name string) int64 {
				return sendRequest(http.MethodGet, contactURL(baseURL, name), nil)
			}
			callInLoop(names, f)
		}
		{
			// DELETE requests
			f := func(name string) int64 {
				return sendRequest(http.MethodDelete, contactURL(baseURL, name), nil)
			}
			callInLoop(names, f)
		}
		fmt.Println()
	}
}

func callInLoop(names []string, f func(name string) int64) {
	var duration int64
	for _, name := range names {
		duration += f(name)
	}
	fmt.Printf("%10d", duration/int64(len(names)*1000))
}

func createRandomSliceWithNames(loops int) []string {
	names := make([]string, 0, loops)
	for i := 0; i < loops; i++ {
		names = append(names, fmt.Sprintf("Marcus Antonius %c%d", 'A'+rune(i%26), i))
	}
	rand.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
	return names
}

func contactURL(baseURL, name string) string {
	return baseURL + "/contacts/" + url.PathEscape(name)
}

func contactBody(name string) io.Reader {
	body, err := json.Marshal(wire.Contact{Name: name, Phones: []string{"39999777555"}})
	if err != nil {
		panic(err)
	}
	return bytes.NewReader(body)
}

func sendRequest(method string, requestURL string, bodyReader io.Reader) int64 {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	if _, err := io.ReadAll(res.Body); err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	return after - before
}
