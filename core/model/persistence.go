package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// SaveModel はモデルをファイルに保存する
//
// パラメータ:
//   - model: 保存するモデル（gobでエンコード可能な構造体）
//   - filename: 保存先のファイルパス
//
// 使用例:
//
//	err := model.SaveModel(m, "heart_scale.model.L2R_LR")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.NewModelError("SaveModel", "can't save model to file "+filename, err)
	}

	if err := SaveModelToWriter(model, file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.NewModelError("SaveModel", "can't save model to file "+filename, err)
	}
	return nil
}

// LoadModel はファイルからモデルを読み込む
//
// 使用例:
//
//	var m linear.Model
//	err := model.LoadModel(&m, "heart_scale.model.L2R_LR")
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.NewModelError("LoadModel", "can't open model file "+filename, err)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.NewModelError("SaveModel", "failed to encode model", err)
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.NewModelError("LoadModel", "failed to decode model", err)
	}
	return nil
}
