package services

import "testing"

func TestDownloadURL(t *testing.T) {
	got := downloadURL("demo.appspot.com", "task-images/0b1c.png", "tok-1")
	want := "https://firebasestorage.googleapis.com/v0/b/demo.appspot.com/o/task-images%2F0b1c.png?alt=media&token=tok-1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
