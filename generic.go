package nlcodec

import "fmt"

// Encode serializes v into a freshly allocated, word-aligned buffer: the
// value itself followed by its trailing padding.
func Encode(v Serializer) ([]byte, error) {
	mem := MakeBytesWriter(ASize(v))
	if err := EncodeTo(v, mem); err != nil {
		return nil, err
	}
	return mem.Bytes(), nil
}

// EncodeTo serializes v and its trailing padding at the cursor of mem.
// mem must have at least ASize(v) bytes left; the bytes after that are untouched.
func EncodeTo(v Serializer, mem *BytesWriter) error {
	expectedSize := ASize(v)
	if mem.Available() < expectedSize {
		_, err := serErr(fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEOB, expectedSize, mem.Available()), mem)
		return err
	}
	sub, err := mem.Split(v.Size())
	if err != nil {
		_, err = ioErr(err, mem)
		return err
	}
	if _, err := v.Serialize(sub); err != nil {
		return err
	}
	if _, err := Pad(v, mem); err != nil {
		return err
	}
	return nil
}

// Decode reconstructs a new owned T from mem.
func Decode[T any, PT interface {
	*T
	Deserializer
}](mem []byte) (T, error) {
	var v T
	if err := PT(&v).Deserialize(mem); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// DecodeFromSlice decodes a T that borrows from mem. The result is valid only
// while mem is alive and unmodified.
func DecodeFromSlice[T any, PT interface {
	*T
	SliceDeserializer
}](mem []byte) (T, error) {
	var v T
	if err := PT(&v).DeserializeFromSlice(mem); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
