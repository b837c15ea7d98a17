package transition

import (
	"github.com/revelaction/conlleval/config"
	"github.com/revelaction/conlleval/fault"
	"github.com/revelaction/conlleval/vocab"
)

// ForTask loads the transition statistics of a task. Tasks decoded with
// viterbi or a crf must name their statistics. A task without statistics
// gets a nil Matrix.
func ForTask(f *config.File, task config.Task, vocabs vocab.Set) (*Matrix, error) {
	if task.TransitionStats == "" {
		if task.Viterbi || task.CRF {
			return nil, fault.Config("load transitions", task.Name, "viterbi or crf decoding requires transition_stats")
		}
		return nil, nil
	}

	v, err := vocabs.Get(VocabName(task))
	if err != nil {
		return nil, err
	}

	return Load(f.Resolve(task.TransitionStats), v.Len(), v.Index())
}

// VocabName is the vocabulary of the tags of a task: vocab, or else the tags
// column name.
func VocabName(task config.Task) string {
	if task.Vocab != "" {
		return task.Vocab
	}
	return task.Tags
}

// ForTasks loads the statistics of every configured task, by task name.
// Tasks without statistics are absent from the map.
func ForTasks(f *config.File, vocabs vocab.Set) (map[string]*Matrix, error) {
	out := map[string]*Matrix{}
	for _, name := range f.TaskNames() {
		m, err := ForTask(f, f.Tasks[name], vocabs)
		if err != nil {
			return nil, err
		}

		if m != nil {
			out[name] = m
		}
	}

	return out, nil
}
