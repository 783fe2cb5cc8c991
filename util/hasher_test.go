package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetFileHash(t *testing.T) {
	// Create temp directory for test files
	tmpDir := t.TempDir()

	// Create test files with known content
	emptyFile := filepath.Join(tmpDir, "empty.txt")
	os.WriteFile(emptyFile, []byte{}, 0644)

	helloFile := filepath.Join(tmpDir, "hello.txt")
	os.WriteFile(helloFile, []byte("hello world"), 0644)

	binaryFile := filepath.Join(tmpDir, "binary.bin")
	os.WriteFile(binaryFile, []byte{0x00, 0x01, 0x02, 0xff}, 0644)

	subDir := filepath.Join(tmpDir, "subdir")
	os.Mkdir(subDir, 0755)

	tests := []struct {
		name     string
		path     string
		wantHash string
		wantErr  error
	}{
		{
			name:     "empty file",
			path:     emptyFile,
			wantHash: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			wantErr:  nil,
		},
		{
			name:     "hello world file",
			path:     helloFile,
			wantHash: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
			wantErr:  nil,
		},
		{
			name:     "binary file",
			path:     binaryFile,
			wantHash: "3d1f57c984978ef98a18378c8166c1cb8ede02c03eeb6aee7e2f121dfeee3e56",
			wantErr:  nil,
		},
		{
			name:    "directory returns error",
			path:    subDir,
			wantErr: ErrExpectedFile,
		},
		{
			name:    "non-existent file",
			path:    filepath.Join(tmpDir, "nonexistent.txt"),
			wantErr: os.ErrNotExist, // Will be wrapped, check with errors.Is
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHash, err := GetFileHash(tt.path)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("GetFileHash() expected error %v, got nil", tt.wantErr)
					return
				}
				// For os.ErrNotExist, the error is wrapped
				if tt.wantErr == os.ErrNotExist {
					if !os.IsNotExist(err) {
						t.Errorf("GetFileHash() error = %v, want os.ErrNotExist", err)
					}
					return
				}
				if err != tt.wantErr {
					t.Errorf("GetFileHash() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("GetFileHash() unexpected error = %v", err)
				return
			}

			if gotHash != tt.wantHash {
				t.Errorf("GetFileHash() = %v, want %v", gotHash, tt.wantHash)
			}
		})
	}
}

func TestGetHash(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		input   string
		wantErr error
	}{
		{
			name:    "empty input",
			input:   "",
			want:    "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			wantErr: nil,
		},
		{
			name:    "hello world",
			input:   "hello world",
			want:    "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
			wantErr: nil,
		},
		{
			name:    "newline at end",
			input:   "hello\n",
			want:    "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03",
			wantErr: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := strings.NewReader(tt.input)
			got, err := GetHash(reader)
			if err != tt.wantErr {
				t.Errorf("GetHash() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("GetHash() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucket(t *testing.T) {
	names := []string{"a", "b", "0f8fad5b-d9cb-469f-a165-70867728950e", strings.Repeat("z", 256)}
	for _, n := range []int{1, 7, 1000} {
		for _, name := range names {
			b := Bucket(name, n)
			if b < 0 || b >= n {
				t.Errorf("Bucket(%q, %d) = %d, out of range", name, n, b)
			}
			if again := Bucket(name, n); again != b {
				t.Errorf("Bucket(%q, %d) not stable: %d then %d", name, n, b, again)
			}
		}
	}
	if got := Bucket("a", 0); got != 0 {
		t.Errorf("Bucket with no buckets = %d, want 0", got)
	}
}
