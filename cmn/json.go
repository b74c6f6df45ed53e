package cmn

import "encoding/json"

// JSON https://www.json.org/json-en.html
type JSON map[string]interface{}

func JSONParse(data []byte) (*JSON, error) {
	var obj = &JSON{}
	err := json.Unmarshal(data, obj)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (j *JSON) Encode() ([]byte, error) {
	return json.Marshal(j.Get())
}

func (j *JSON) Get() map[string]interface{} {
	o := *j
	if o == nil {
		return map[string]interface{}{}
	}
	return o
}

// Has determine if the JSON contains a specific key.
func (j *JSON) Has(key string) (exists bool) {
	_, exists = j.Get()[key]
	return
}

// Set saves a value, initializing the map if necessary.
func (j *JSON) Set(key string, value interface{}) {
	if *j == nil {
		*j = JSON{}
	}
	(*j)[key] = value
}

func (j *JSON) String(key string) string {
	if value, ok := j.Get()[key].(string); ok {
		return value
	}
	return ""
}

func (j *JSON) Number(key string) float64 {
	switch value := j.Get()[key].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case json.Number:
		f, _ := value.Float64()
		return f
	}
	return 0
}

func (j *JSON) Bool(key string) bool {
	if value, ok := j.Get()[key].(bool); ok {
		return value
	}
	return false
}

func (j *JSON) Object(key string) *JSON {
	if value, ok := j.Get()[key].(map[string]interface{}); ok {
		obj := JSON(value)
		return &obj
	}
	return nil
}

func (j *JSON) Array(key string) []interface{} {
	if value, ok := j.Get()[key].([]interface{}); ok {
		return value
	}
	return nil
}

func (j *JSON) ArrayString(key string) []string {
	var out []string
	for _, item := range j.Array(key) {
		if value, ok := item.(string); ok {
			out = append(out, value)
		}
	}
	return out
}
