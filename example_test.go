package fauna_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/fauna/fauna-decode"
)

type product struct {
	fauna.Document
	Name     string         `json:"name"`
	Category fauna.PlainRef `json:"category"`
}

func ExampleParseResponse() {
	body := `{
		"data": {"data": [{"id": "1", "coll": "Products", "name": "cup"}], "after": "hdW/cursor"},
		"summary": "",
		"txn_ts": 1700000000000000,
		"stats": {"compute_ops": 1, "read_ops": 8}
	}`

	res, err := fauna.ParseResponse([]byte(body))
	if err != nil {
		log.Fatalf("%s", err)
	}

	fmt.Println(res.Kind, *res.After, res.Timestamp.Format(time.RFC3339), res.Stats.ReadOps)
	// Output: page hdW/cursor 2023-11-14T22:13:20Z 8
}

func ExampleDecode() {
	res, err := fauna.ParseResponse([]byte(`{"data":{"id":"7","coll":"Products","name":"cup","category":"Categories/2"}}`))
	if err != nil {
		log.Fatalf("%s", err)
	}

	p, err := fauna.Decode[product](res)
	if err != nil {
		log.Fatalf("%s", err)
	}

	fmt.Println(p.Ref(), p.Name, p.Category.Reference())
	// Output: Products/7 cup Categories/2
}

func ExampleDecode_failure() {
	res, err := fauna.ParseResponse([]byte(`{"error":{"code":"abort","message":"Query aborted."},"summary":"error: Query aborted."}`))
	if err != nil {
		log.Fatalf("%s", err)
	}

	_, err = fauna.Decode[int](res)
	fmt.Println(res.IsFailure(), err)
	// Output: true error: Query aborted.
}

func ExampleDecodePage() {
	res, err := fauna.ParseResponse([]byte(`{"data":[{"data":{"data":[1,2,3],"after":null}}]}`))
	if err != nil {
		log.Fatalf("%s", err)
	}

	page, err := fauna.DecodePage[int](res)
	if err != nil {
		log.Fatalf("%s", err)
	}

	fmt.Println(page.Data, page.HasNext())
	// Output: [1 2 3] false
}

func ExampleFQL() {
	q, err := fauna.FQL(`Products.byName(${name}).first()`, map[string]any{"name": "cup"})
	if err != nil {
		log.Fatalf("%s", err)
	}

	fmt.Println(q)
	// Output: Products.byName("cup").first()
}

func ExampleFQL_composed() {
	coll, err := fauna.FQL(`Products`)
	if err != nil {
		log.Fatalf("%s", err)
	}

	q, err := fauna.FQL(`${coll}.where(.category == ${category})`, map[string]any{
		"coll":     coll,
		"category": fauna.TaggedRef{Collection: "Categories", ID: "2"},
	})
	if err != nil {
		log.Fatalf("%s", err)
	}

	fmt.Println(q)
	// Output: Products.where(.category == {"@ref":{"id":"2","coll":"Categories"}})
}

func ExampleTaggedRef() {
	type line struct {
		Product  fauna.TaggedRef `json:"product"`
		Category fauna.PlainRef  `json:"category"`
	}

	bs, err := json.Marshal(line{
		Product:  fauna.TaggedRef{Collection: "Products", ID: "7"},
		Category: fauna.PlainRef{Collection: "Categories", ID: "2"},
	})
	if err != nil {
		log.Fatalf("%s", err)
	}

	fmt.Println(string(bs))
	// Output: {"product":{"@ref":{"id":"7","coll":"Products"}},"category":"Categories/2"}
}

func ExamplePaginate() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bs, _ := io.ReadAll(r.Body)
		if strings.Contains(string(bs), "Set.paginate") {
			_, _ = io.WriteString(w, `{"data":{"data":[3],"after":null}}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"data":[1,2],"after":"hdW/next"}}`)
	}))
	defer server.Close()

	// IMPORTANT: just for the purpose of example, don't actually hardcode secret
	client := fauna.NewClient("secret", fauna.URL(server.URL))

	q, err := fauna.FQL(`Numbers.all()`)
	if err != nil {
		log.Fatalf("%s", err)
	}

	sum := 0
	iter := fauna.Paginate[int](client, q)
	for iter.HasNext() {
		page, pageErr := iter.Next()
		if pageErr != nil {
			log.Fatalf("%s", pageErr)
		}

		for _, n := range page.Data {
			sum += n
		}
	}

	fmt.Println(sum)
	// Output: 6
}
