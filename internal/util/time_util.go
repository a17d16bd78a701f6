package util

import (
	"encoding/json"
	"fmt"
	"time"
)

// CompactDate formats t as YYYYMMDD.
func CompactDate(t time.Time) string {
	return t.Format("20060102")
}

func Pprint(i interface{}) {
	bytes, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(bytes))
}
